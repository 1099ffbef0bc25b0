package domain

// ErrorKind classifies failures surfaced to the presentation layer.
type ErrorKind string

const (
	KindCredentialMissing   ErrorKind = "credential_missing"
	KindCredentialMalformed ErrorKind = "credential_malformed"
	KindLoadFailure         ErrorKind = "load_failure"
	KindMutationFailure     ErrorKind = "mutation_failure"
	KindValidationFailure   ErrorKind = "validation_failure"
	KindDispatchFailure     ErrorKind = "dispatch_failure"
	KindVerificationFailure ErrorKind = "verification_failure"
	KindNotificationFailure ErrorKind = "notification_failure"
)

func (k ErrorKind) String() string {
	return string(k)
}
