package greeter

// ToDTO copies a stored greeter into its boundary representation.
func ToDTO(g *Greeter) *GreeterDTO {
	dto := &GreeterDTO{
		FirstName:  g.FirstName,
		LastName:   g.LastName,
		Salutation: g.Salutation,
	}
	if g.ID != 0 {
		id := g.ID
		dto.ID = &id
	}
	return dto
}

// ToDTOs maps a list of greeters, preserving order. Never returns nil.
func ToDTOs(gs []*Greeter) []*GreeterDTO {
	dtos := make([]*GreeterDTO, 0, len(gs))
	for _, g := range gs {
		dtos = append(dtos, ToDTO(g))
	}
	return dtos
}

// ToEntity is the inverse of ToDTO.
func ToEntity(dto *GreeterDTO) *Greeter {
	g := &Greeter{
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Salutation: dto.Salutation,
	}
	if dto.ID != nil {
		g.ID = *dto.ID
	}
	return g
}

// ToDraft returns the write variant of dto. Any non-nil ID, zero included,
// yields a Saved draft so it is matched against an existing row.
func ToDraft(dto *GreeterDTO) Draft {
	fields := Fields{
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Salutation: dto.Salutation,
	}
	if dto.ID == nil {
		return Unsaved{Fields: fields}
	}
	return Saved{ID: *dto.ID, Fields: fields}
}

// FromID returns a greeter stub holding only id, or nil if id is nil.
func FromID(id *int64) *Greeter {
	if id == nil {
		return nil
	}
	return &Greeter{ID: *id}
}

// FromName returns a greeter stub holding only the two names, or nil if either
// name is empty.
func FromName(firstName, lastName string) *Greeter {
	if firstName == "" || lastName == "" {
		return nil
	}
	return &Greeter{FirstName: firstName, LastName: lastName}
}
