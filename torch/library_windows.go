//go:build windows

package torch

import (
	"errors"

	"github.com/benedoc-inc/torchbridge/torch/internal/api"
)

func loadFuncs(path string) (api.APIFuncs, error) {
	return nil, errors.New("loading the Python library is not supported on windows")
}
