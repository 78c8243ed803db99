package web

type ctxKey int

const (
	ctxKeyAuthUser ctxKey = iota
	ctxKeyLocale
)
