package pgdbhelper

import "strings"

// ServerConnString returns the key/value connection string without a
// database name, used for CREATE and DROP DATABASE. Blank fields are left
// out; a config with nothing set yields "".
func (c ConnectionConfig) ServerConnString() string {
	var b strings.Builder
	if !isBlank(c.Host) {
		b.WriteString("host=" + c.Host)
	}
	if !isBlank(c.Username) {
		b.WriteString(" user=" + c.Username)
	}
	if !isBlank(c.Password) {
		b.WriteString(" password=" + c.Password)
	}
	return b.String()
}

// DatabaseConnString is ServerConnString plus " dbname=<name>" when the name
// is set.
func (c ConnectionConfig) DatabaseConnString() string {
	s := c.ServerConnString()
	if !isBlank(c.Name) {
		s += " dbname=" + c.Name
	}
	return s
}
