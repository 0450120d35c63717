package modules

import (
	"github.com/transapp/opct/modules/core"
	"github.com/transapp/opct/modules/opct"
	"github.com/transapp/opct/modules/routes"
	"github.com/transapp/opct/pkg/application"
)

// BuiltInModules lists every module in registration order. Core must
// come first: the workflow modules resolve its services while wiring.
var BuiltInModules = []application.Module{
	core.NewModule(),
	opct.NewModule(),
	routes.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	modules := make([]application.Module, 0, len(BuiltInModules)+len(externalModules))
	modules = append(modules, BuiltInModules...)
	modules = append(modules, externalModules...)
	return application.Load(app, modules...)
}
