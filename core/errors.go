package core

import "errors"

var ErrInvalidArgument = errors.New("core: invalid argument")
