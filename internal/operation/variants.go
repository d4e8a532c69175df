package operation

// Variant binds a verb to the factory of its operation type.
type Variant struct {
	Verb    string
	Kind    string
	Factory Factory
}

// Variants returns the static table of every operation type.
func Variants() []Variant {
	return []Variant{
		{VerbCreateMaterializedView, KindMaterializedView, factory(NewCreateMaterializedView)},
		{VerbDropMaterializedView, KindMaterializedView, factory(NewDropMaterializedView)},
		{VerbRenameMaterializedView, KindMaterializedView, factory(NewRenameMaterializedView)},
		{VerbChangeMaterializedView, KindMaterializedView, factory(NewChangeMaterializedView)},
		{VerbRefreshMaterializedView, KindMaterializedView, factory(NewRefreshMaterializedView)},
		{VerbCreateView, KindView, factory(NewCreateView)},
		{VerbDropView, KindView, factory(NewDropView)},
		{VerbRenameView, KindView, factory(NewRenameView)},
		{VerbChangeView, KindView, factory(NewChangeView)},
	}
}

// factory adapts a typed constructor so a failed construction yields a nil
// interface rather than a typed nil pointer.
func factory[T Operation](build func(map[string]any) (T, error)) Factory {
	return func(values map[string]any) (Operation, error) {
		op, err := build(values)
		if err != nil {
			return nil, err
		}
		return op, nil
	}
}
