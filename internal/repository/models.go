package repository

// Models lists every persisted row type for schema migration.
func Models() []any {
	return []any{
		&organizationModel{},
		&userModel{},
		&roomModel{},
		&compensationModel{},
		&recurrenceRuleModel{},
		&bookingModel{},
	}
}
