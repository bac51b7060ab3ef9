package models

// RecoverableError is implemented by enriched errors that carry structured
// context and remediation hints, such as errs.Error. The output package
// matches the same method set through its own local interface instead of
// importing this one.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}
