// Package password implements credential hashing and verification.
//
// Two schemes are available behind the [Hasher] interface:
//
//	bcrypt    $2a$10$...                                   (default, cost 10)
//	argon2id  $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Multi] hashes with one scheme and verifies either format by prefix, so an
// operator can switch algorithms without invalidating stored credentials.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other goTenant package.
//   - Log plaintext passwords.
package password
