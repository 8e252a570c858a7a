package typesystem

// Unify is the lattice join: the least type both operands are compatible
// with. It is commutative and idempotent and never fails; constructs the
// lattice cannot express are rejected earlier, at inference time.
//
// Rules:
//   - unify(t, t) = t
//   - Unknown is absorbed by any other type
//   - Int/Float mix promotes to Float, Bool/Int to Int, Bool/Float to
//     Float (native code needs one representation)
//   - two distinct record types join into a union of both, never a
//     silent coercion
//   - a union operand merges element-wise into the flattened result set
func Unify(a, b Type) Type {
	if IsUnknown(a) {
		return b
	}
	if IsUnknown(b) {
		return a
	}
	if Equal(a, b) {
		return a
	}

	pa, aPrim := a.(Primitive)
	pb, bPrim := b.(Primitive)
	if aPrim && bPrim {
		return promote(pa, pb)
	}

	// At least one side is a record or union: element-wise merge with
	// primitive promotion folded across all primitive members.
	members := append(Members(a), Members(b)...)
	var prim *Primitive
	rest := make([]Type, 0, len(members))
	for _, m := range members {
		if p, ok := m.(Primitive); ok {
			if prim == nil {
				prim = &p
			} else {
				folded := promote(*prim, p)
				prim = &folded
			}
			continue
		}
		rest = append(rest, m)
	}
	if prim != nil {
		rest = append(rest, *prim)
	}
	return NormalizeUnion(rest)
}

// promote joins two primitives along Bool < Int < Float.
func promote(a, b Primitive) Primitive {
	if a.Kind == b.Kind {
		return a
	}
	if a.Kind == Float || b.Kind == Float {
		return Primitive{Kind: Float}
	}
	// Bool mixed with Int
	return Primitive{Kind: Int}
}
