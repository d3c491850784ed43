package runs

import "errors"

var ErrNotFound = errors.New("no refresh runs recorded")
