package ecs

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithCapacity pre-allocates room for n entities.
//
// Parameters:
//   - n: expected number of live entities
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithCapacity(n int) RegistryBuilderOption {
	return func(r *registry) {
		if n <= 0 {
			return
		}
		r.entities = make([]Entity, 0, n)
		r.alive = make(map[Entity]struct{}, n)
	}
}
