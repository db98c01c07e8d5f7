package utils

import (
	"context"
)

type contextKey string

const (
	SubjectIDKey contextKey = "subject_id"
	EmailKey     contextKey = "email"
	NameKey      contextKey = "name"
)

// SetIdentityContext stores the verified caller in ctx.
func SetIdentityContext(ctx context.Context, subjectID, email, name string) context.Context {
	ctx = context.WithValue(ctx, SubjectIDKey, subjectID)
	ctx = context.WithValue(ctx, EmailKey, email)
	ctx = context.WithValue(ctx, NameKey, name)
	return ctx
}

func GetSubjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SubjectIDKey).(string)
	return id, ok && id != ""
}

func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

func GetNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(NameKey).(string)
	return name
}
