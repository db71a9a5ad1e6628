package domain

// Models lists every entity for auto-migration, parents first.
func Models() []any {
	return []any{
		&User{},
		&Course{},
		&Class{},
		&Assignment{},
		&Submission{},
		&StoredFile{},
	}
}
