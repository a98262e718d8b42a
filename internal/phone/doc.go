// Package phone turns raw spreadsheet cells into canonical international
// phone numbers.
//
// Normalization is deliberately lenient: it never rejects a token. Tokens
// that are not phone numbers at all still come out with a leading "+" and are
// left for the dispatch gateway to refuse. The only guarantee is idempotence:
// normalizing an already canonical number returns it unchanged.
//
// Check offers an advisory validity verdict backed by libphonenumber metadata.
// It is informational and is never consulted by the send loop.
package phone
