// Package audit delivers security-relevant events (logins, token lifecycle,
// invitation lifecycle) to an out-of-band sink for human review.
//
// Delivery is best-effort. Emitters never return errors and a failing or
// unreachable sink never affects the operation that produced the event.
//
// Sensitive data: every event carries the full credential value involved,
// including the rejected value of a failed login. A mistyped credential is
// often one character away from a real one, so that value is close to a
// secret. Operators who forward events to third-party services should set
// Config.RedactFailed, which masks the value on login_failure events before
// any sink sees them. The default keeps the full value so that the audit
// trail shows exactly what was presented. LogSink always masks values since
// process logs are not an audit channel.
package audit
