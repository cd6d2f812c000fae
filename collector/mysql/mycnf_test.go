// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"os"
	"os/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_dsnFromFile(t *testing.T) {
	username := getUser()
	tests := map[string]struct {
		config      string
		expectedDSN string
		wantErr     bool
	}{
		"socket": {
			config: `
[client]
socket=/opt/bitnami/mariadb/tmp/mysql.sock
`,
			expectedDSN: username + "@unix(/opt/bitnami/mariadb/tmp/mysql.sock)/",
		},
		"socket, host, port": {
			config: `
[client]
host=10.0.0.0
port=3307
socket=/opt/bitnami/mariadb/tmp/mysql.sock
`,
			expectedDSN: username + "@unix(/opt/bitnami/mariadb/tmp/mysql.sock)/",
		},
		"host, port": {
			config: `
[client]
host=10.0.0.0
port=3307
`,
			expectedDSN: username + "@tcp(10.0.0.0:3307)/",
		},
		"only host": {
			config: `
[client]
host=10.0.0.0
`,
			expectedDSN: username + "@tcp(10.0.0.0:3306)/",
		},
		"only port": {
			config: `
[client]
port=3307
`,
			expectedDSN: username + "@tcp(localhost:3307)/",
		},
		"user, password": {
			config: `
[client]
user=user
password=password
`,
			expectedDSN: "user:password@/",
		},
		"empty": {
			config: `
[client]
`,
			expectedDSN: username + "@/",
		},
		"no client section": {
			config: `
[no_client]
`,
			wantErr: true,
		},
	}

	dir := t.TempDir()

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := os.CreateTemp(dir, "my.cnf")
			require.NoError(t, err)
			_ = f.Close()
			defer func() { _ = os.Remove(f.Name()) }()
			_ = os.WriteFile(f.Name(), []byte(test.config), 0644)

			if dsn, err := dsnFromFile(f.Name()); test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, test.expectedDSN, dsn)
			}
		})
	}
}

func getUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
