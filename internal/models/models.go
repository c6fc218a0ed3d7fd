package models

// All lists every record migrated at startup.
func All() []any {
	return []any{
		&Company{},
		&Department{},
		&JobRole{},
		&UserAssignment{},
		&User{},
		&AccessRole{},
		&UserAccessRole{},
		&AuditLog{},
		&Settings{},
	}
}
