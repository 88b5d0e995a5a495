package bitio

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sumRegistry maps a sum type's Body interface type to its SumDescriptor.
// Unlike struct descriptors, a sum's variant list can't be derived purely
// from reflection (the variants are heterogeneous concrete types chosen by
// the caller), so it is registered once, typically from an init function,
// via RegisterSum.
var sumRegistry = xsync.NewMap[reflect.Type, *SumDescriptor]()

// Variant describes one arm of a sum type.
type Variant struct {
	// Discriminant is this variant's explicit numeric tag. Leave nil to
	// have it default to the previous variant's discriminant plus one
	// (starting at 0 for the first variant).
	Discriminant *uint64
	// CatchAll marks this variant as matching any discriminant value no
	// earlier variant claimed. At most one variant should set this.
	CatchAll bool
	// Type is the concrete Go type carried by this variant's body. It
	// must be assignable to the sum's Body interface.
	Type reflect.Type
	// Size is the body's externally supplied size (bits for integers,
	// bytes for strings/byte slices). Zero means the body has no size
	// expression and is read/written via the unsized codec.
	Size int
}

// Disc is a small helper for constructing a *uint64 discriminant literal
// inline in a Variants(...) call.
func Disc(k uint64) *uint64 { return &k }

// SumDescriptor is the derivation generator's compiled view of a sum type:
// discriminant width plus resolved per-variant discriminants.
type SumDescriptor struct {
	discriminantBits int
	variants         []resolvedVariant
}

type resolvedVariant struct {
	discriminant uint64
	catchAll     bool
	typ          reflect.Type
	sized        bool
	size         int
}

// Variants builds a SumDescriptor from discriminantBits and an ordered
// list of variant declarations, resolving default (incrementing)
// discriminants exactly as spec §4.4 item 3 describes.
func Variants(discriminantBits int, variants ...Variant) *SumDescriptor {
	d := &SumDescriptor{discriminantBits: discriminantBits}
	next := uint64(0)
	for _, v := range variants {
		rv := resolvedVariant{typ: v.Type, catchAll: v.CatchAll, sized: v.Size > 0, size: v.Size}
		switch {
		case v.CatchAll:
			// catch-all carries no fixed discriminant of its own.
		case v.Discriminant != nil:
			rv.discriminant = *v.Discriminant
			next = rv.discriminant + 1
		default:
			rv.discriminant = next
			next++
		}
		d.variants = append(d.variants, rv)
	}
	return d
}

// RegisterSum associates bodyType (the interface type used as a Sum[Body]
// instantiation's type argument) with its descriptor. Call once, typically
// from an init function, before any Read/Write of that Sum type.
func RegisterSum(bodyType reflect.Type, d *SumDescriptor) {
	sumRegistry.Store(bodyType, d)
}

func (d *SumDescriptor) match(disc uint64) (resolvedVariant, bool) {
	for i := range d.variants {
		v := &d.variants[i]
		if v.catchAll {
			return *v, true
		}
		if v.discriminant == disc {
			return *v, true
		}
	}
	return resolvedVariant{}, false
}

// BitSize implements the sum-type predictable-size rule: only constant
// when every variant shares the same constant body size, in which case the
// result includes the discriminant width.
func (d *SumDescriptor) BitSize() (int, bool) {
	if len(d.variants) == 0 {
		return d.discriminantBits, true
	}
	var bodyBits int
	for i, v := range d.variants {
		var bits int
		if v.sized {
			bits = literalBits(v.typ, v.size)
		} else {
			b, ok := bitSizeOfType(v.typ)
			if !ok {
				return 0, false
			}
			bits = b
		}
		if i == 0 {
			bodyBits = bits
		} else if bits != bodyBits {
			return 0, false
		}
	}
	return d.discriminantBits + bodyBits, true
}

// Sum[Body] is the generic wrapper a derived sum type field uses. Body
// must be an interface that every variant's concrete Type implements —
// the variant value is boxed into Value after a successful read.
type Sum[Body any] struct {
	Value Body
}

func (sv *Sum[Body]) descriptor() (*SumDescriptor, bool) {
	var zero Body
	t := reflect.TypeOf(&zero).Elem()
	return sumRegistry.Load(t)
}

// sumReader/sumWriter let the reflection-driven Read[T]/Write[T] fallback
// recognize a Sum[Body] instantiation without needing a type switch over
// every possible Body (which generics make impossible to enumerate).
type sumReader interface{ readSum(s *ReadStream) error }
type sumWriter interface{ writeSum(s *WriteStream) error }
type sizedSumReader interface {
	readSumSized(s *ReadStream, size int) error
}
type sizedSumWriter interface {
	writeSumSized(s *WriteStream, size int) error
}

func (sv *Sum[Body]) readSum(s *ReadStream) error {
	d, ok := sv.descriptor()
	if !ok {
		return errUnmatchedDiscriminant(0, reflect.TypeOf(sv).Elem().String())
	}
	disc, err := s.ReadUint(d.discriminantBits)
	if err != nil {
		return err
	}
	v, ok := d.match(disc)
	if !ok {
		return errUnmatchedDiscriminant(disc, reflect.TypeOf(sv).Elem().String())
	}
	body := reflect.New(v.typ)
	if v.sized {
		if err := readFieldSized(s, body.Elem(), v.size); err != nil {
			return err
		}
	} else {
		if err := readFieldGeneric(s, body.Elem()); err != nil {
			return err
		}
	}
	reflect.ValueOf(sv).Elem().FieldByName("Value").Set(body.Elem())
	return nil
}

func (sv *Sum[Body]) readSumSized(s *ReadStream, _ int) error {
	return sv.readSum(s)
}

func (sv *Sum[Body]) writeSum(s *WriteStream) error {
	d, ok := sv.descriptor()
	if !ok {
		return errUnmatchedDiscriminant(0, reflect.TypeOf(sv).Elem().String())
	}
	bodyVal := reflect.ValueOf(sv.Value)
	variant, disc, ok := d.matchByType(bodyVal.Type())
	if !ok {
		return errUnmatchedDiscriminant(0, bodyVal.Type().String())
	}
	if err := s.WriteUint(disc, d.discriminantBits); err != nil {
		return err
	}
	if variant.sized {
		return writeFieldSized(s, bodyVal, variant.size)
	}
	return writeFieldGeneric(s, bodyVal)
}

func (sv *Sum[Body]) writeSumSized(s *WriteStream, _ int) error {
	return sv.writeSum(s)
}

// matchByType finds the variant whose Type matches t, returning its
// resolved form and the discriminant to encode. A catch-all variant
// encodes using the next unused discriminant value past every explicit
// one, per §4.4's write symmetry note.
func (d *SumDescriptor) matchByType(t reflect.Type) (resolvedVariant, uint64, bool) {
	var maxDisc uint64
	var haveExplicit bool
	for _, v := range d.variants {
		if !v.catchAll && v.discriminant >= maxDisc {
			maxDisc = v.discriminant
			haveExplicit = true
		}
	}
	for _, v := range d.variants {
		if v.typ != t {
			continue
		}
		if v.catchAll {
			disc := maxDisc
			if haveExplicit {
				disc = maxDisc + 1
			}
			return v, disc, true
		}
		return v, v.discriminant, true
	}
	return resolvedVariant{}, 0, false
}
