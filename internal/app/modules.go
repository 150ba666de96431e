package app

import (
	"github.com/vk/plugdef/internal/registry"
	"github.com/vk/plugdef/modules/game"
)

// coreModules is the definitive list of all modules that are compiled into
// the plugdef binary. Definitions can only name what these register.
var coreModules = []registry.Module{
	&game.Module{},
}
