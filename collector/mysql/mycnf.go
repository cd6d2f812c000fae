// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

import (
	"fmt"
	"net"
	"os/user"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/ini.v1"
)

// dsnFromFile builds a DSN from the [client] section of a my.cnf style file.
// A socket takes precedence over host/port. Fields that are not set fall
// back to the client defaults (current OS user, localhost, 3306).
func dsnFromFile(filename string) (string, error) {
	f, err := ini.Load(filename)
	if err != nil {
		return "", fmt.Errorf("error on reading '%s': %v", filename, err)
	}

	section, err := f.GetSection("client")
	if err != nil {
		return "", fmt.Errorf("no [client] section in '%s'", filename)
	}

	var (
		username = section.Key("user").String()
		password = section.Key("password").String()
		socket   = section.Key("socket").String()
		host     = section.Key("host").String()
		port     = section.Key("port").String()
	)

	cfg := mysql.NewConfig()
	cfg.User = username
	cfg.Passwd = password

	if cfg.User == "" {
		u, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("no user in '%s' and can't determine current user: %v", filename, err)
		}
		cfg.User = u.Username
	}

	switch {
	case socket != "":
		cfg.Net = "unix"
		cfg.Addr = socket
	case host != "":
		cfg.Net = "tcp"
		if port == "" {
			port = "3306"
		}
		cfg.Addr = net.JoinHostPort(host, port)
	case port != "":
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort("localhost", port)
	}

	return cfg.FormatDSN(), nil
}
