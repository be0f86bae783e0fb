package types

// Account holds the identity and credential material of the document owner.
// AccountID is generated once at registration and never reused; it names the
// database file and salts every key derivation.
type Account struct {
	AccountID    string `json:"account_id" yaml:"account_id" toml:"account_id"`
	Username     string `json:"username" yaml:"username" toml:"username"`
	PasswordHash string `json:"password_hash,omitempty" yaml:"password_hash,omitempty" toml:"password_hash,omitempty"`
	TOTPSecret   string `json:"totp_secret,omitempty" yaml:"totp_secret,omitempty" toml:"totp_secret,omitempty"`
}

// HasTOTP reports whether a second factor is enrolled.
func (a Account) HasTOTP() bool {
	return a.TOTPSecret != ""
}

// Public returns a copy without credential material, for cleartext exports.
func (a Account) Public() Account {
	return Account{AccountID: a.AccountID, Username: a.Username}
}

// AccountRef is the plaintext identity of a database file as seen by a
// directory scan: enough to offer the account on the login screen.
type AccountRef struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
}
