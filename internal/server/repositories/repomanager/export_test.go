package repomanager

import (
	"io/fs"

	"github.com/dmitrijs2005/gophchat/internal/server/migrations"
)

func migrationsDir() ([]string, error) {
	des, err := fs.ReadDir(migrations.Migrations, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(des))
	for _, d := range des {
		names = append(names, d.Name())
	}
	return names, nil
}
