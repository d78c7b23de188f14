package client

import "errors"

var ErrUnknownBackend = errors.New("unknown upload backend")
