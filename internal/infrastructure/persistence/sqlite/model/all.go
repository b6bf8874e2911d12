package model

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Company{},
		&Location{},
		&Vehicle{},
		&Inspection{},
		&Insurance{},
		&User{},
		&SweepLog{},
		&KV{},
	}
}
