//go:build wireinject
// +build wireinject

package app

import (
	"net/http"

	"github.com/google/wire"
	"github.com/gowvp/tally/internal/conf"
	"github.com/gowvp/tally/internal/web/api"
	"gorm.io/gorm"
)

func wireApp(bc *conf.Bootstrap, db *gorm.DB) (http.Handler, func(), error) {
	panic(wire.Build(api.ProviderSet))
}
