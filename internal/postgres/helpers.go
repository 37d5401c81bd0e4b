package postgres

import "github.com/jackc/pgx/v5/pgtype"

// pgTextFromPtr creates a pgtype.Text from a string pointer.
func pgTextFromPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// pgInt8FromPtr creates a pgtype.Int8 from an int64 pointer.
func pgInt8FromPtr(n *int64) pgtype.Int8 {
	if n == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: *n, Valid: true}
}

// pgInt8FromID treats the zero ID as unset.
func pgInt8FromID(id int64) pgtype.Int8 {
	return pgtype.Int8{Int64: id, Valid: id != 0}
}

// pgBoolFromPtr creates a pgtype.Bool from a bool pointer.
func pgBoolFromPtr(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}
