package bitio

// ReadOption reads a 1-bit presence tag followed by a full-width T if set,
// mirroring the built-in codec table's option<T> row (unsized form).
func ReadOption[T any](s *ReadStream) (*T, error) {
	has, err := s.ReadBool()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	v, err := Read[T](s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ReadOptionSized is option<T>'s sized form: a 1-bit tag followed by a
// ReadSized[T] of the given size if set.
func ReadOptionSized[T any](s *ReadStream, size int) (*T, error) {
	has, err := s.ReadBool()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	v, err := ReadSized[T](s, size)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteOption writes a 1-bit presence tag, then the pointee if non-nil.
func WriteOption[T any](s *WriteStream, v *T) error {
	if v == nil {
		return s.WriteBool(false)
	}
	if err := s.WriteBool(true); err != nil {
		return err
	}
	return Write(s, *v)
}

// WriteOptionSized is WriteOption's sized counterpart.
func WriteOptionSized[T any](s *WriteStream, v *T, size int) error {
	if v == nil {
		return s.WriteBool(false)
	}
	if err := s.WriteBool(true); err != nil {
		return err
	}
	return WriteSized(s, *v, size)
}

// ReadVector reads size copies of T using the unsized T codec.
func ReadVector[T any](s *ReadStream, size int) ([]T, error) {
	out := make([]T, size)
	for i := range out {
		v, err := Read[T](s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadVectorSized reads size copies of T, each using the sized T codec
// with the given per-element size.
func ReadVectorSized[T any](s *ReadStream, size, elemSize int) ([]T, error) {
	out := make([]T, size)
	for i := range out {
		v, err := ReadSized[T](s, elemSize)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteVector writes every element of vs with the unsized T codec.
func WriteVector[T any](s *WriteStream, vs []T) error {
	for _, v := range vs {
		if err := Write(s, v); err != nil {
			return err
		}
	}
	return nil
}

// WriteVectorSized writes every element of vs with the sized T codec.
func WriteVectorSized[T any](s *WriteStream, vs []T, elemSize int) error {
	for _, v := range vs {
		if err := WriteSized(s, v, elemSize); err != nil {
			return err
		}
	}
	return nil
}

// Pair is a single key/value entry read or written by ReadMapping/WriteMapping.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// ReadMapping reads size (K, V) pairs using the unsized codec for both K
// and V.
func ReadMapping[K, V any](s *ReadStream, size int) ([]Pair[K, V], error) {
	out := make([]Pair[K, V], size)
	for i := range out {
		k, err := Read[K](s)
		if err != nil {
			return nil, err
		}
		v, err := Read[V](s)
		if err != nil {
			return nil, err
		}
		out[i] = Pair[K, V]{Key: k, Value: v}
	}
	return out, nil
}

// WriteMapping writes every (K, V) pair in ps using the unsized codec.
func WriteMapping[K, V any](s *WriteStream, ps []Pair[K, V]) error {
	for _, p := range ps {
		if err := Write(s, p.Key); err != nil {
			return err
		}
		if err := Write(s, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// ReadSubStream reads size bits as an independent child ReadStream,
// implementing the built-in codec table's sub-stream row.
func ReadSubStream(s *ReadStream, size int) (*ReadStream, error) {
	return s.SubStream(size)
}

// WriteSubStream writes a child stream's remaining bits into s.
func WriteSubStream(s *WriteStream, sub *ReadStream) error {
	return s.WriteBits(sub)
}
