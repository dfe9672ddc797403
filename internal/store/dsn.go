package store

import (
	"net/url"
	"regexp"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// SanitizeDSN normalizes a DSN for the given driver. URL-style postgres DSNs
// get their userinfo percent-encoded so passwords containing @, # or % parse
// correctly. MySQL DSNs get the tcp() wrapper go-sql-driver requires,
// parseTime is forced on so DATETIME columns scan into time.Time, and
// clientFoundRows makes RowsAffected count matched rows like the other drivers.
func SanitizeDSN(driver, dsn string) string {
	switch driver {
	case DriverPostgres:
		return sanitizeURLDSN(dsn)
	case DriverMySQL:
		return sanitizeMySQLDSN(dsn)
	default:
		return dsn
	}
}

var mysqlBareHostPort = regexp.MustCompile(`^(.+)@([^(@]+:\d+)(/.*)?$`)

func sanitizeMySQLDSN(dsn string) string {
	candidates := []string{dsn}

	// user:pass@(host:port)/db is missing the network name.
	if idx := strings.LastIndex(dsn, "@("); idx >= 0 {
		candidates = append(candidates, dsn[:idx]+"@tcp"+dsn[idx+1:])
	}
	// user:pass@host:port/db has no wrapper at all.
	if m := mysqlBareHostPort.FindStringSubmatch(dsn); m != nil {
		candidates = append(candidates, m[1]+"@tcp("+m[2]+")"+m[3])
	}

	for _, c := range candidates {
		cfg, err := mysqldriver.ParseDSN(c)
		if err != nil || (cfg.Net != "tcp" && cfg.Net != "unix") {
			continue
		}
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		return cfg.FormatDSN()
	}
	return dsn
}

func sanitizeURLDSN(dsn string) string {
	schemeEnd := strings.Index(dsn, "://")
	if schemeEnd < 0 {
		return dsn // key=value style
	}

	scheme := dsn[:schemeEnd]
	rest := dsn[schemeEnd+3:]

	query := ""
	if qi := strings.IndexByte(rest, '?'); qi >= 0 {
		query = rest[qi:]
		rest = rest[:qi]
	}

	atIdx := strings.LastIndex(rest, "@")
	if atIdx < 0 {
		return dsn
	}

	userinfo := rest[:atIdx]
	hostpath := rest[atIdx+1:]

	user := userinfo
	pass := ""
	hasPass := false
	if ci := strings.IndexByte(userinfo, ':'); ci >= 0 {
		user = userinfo[:ci]
		pass = userinfo[ci+1:]
		hasPass = true
	}

	// Undo any existing escaping first so already-clean DSNs stay stable.
	if u, err := url.PathUnescape(user); err == nil {
		user = u
	}
	if p, err := url.PathUnescape(pass); err == nil {
		pass = p
	}

	out := scheme + "://" + url.PathEscape(user)
	if hasPass {
		out += ":" + url.PathEscape(pass)
	}
	return out + "@" + hostpath + query
}
