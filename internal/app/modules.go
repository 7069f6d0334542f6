package app

import (
	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/modules/container"
	"github.com/specialistvlad/actionref/modules/dockercompose"
	"github.com/specialistvlad/actionref/modules/exec"
	"github.com/specialistvlad/actionref/modules/helm"
	"github.com/specialistvlad/actionref/modules/kubernetes"
	"github.com/specialistvlad/actionref/modules/terraform"
)

// coreModules is the definitive list of all modules that are compiled into
// the actionref binary.
var coreModules = []registry.Module{
	&container.Module{},
	&dockercompose.Module{},
	&exec.Module{},
	&helm.Module{},
	&kubernetes.Module{},
	&terraform.Module{},
}
