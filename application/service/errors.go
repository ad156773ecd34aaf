package service

import "errors"

// ErrNoAttachment indicates the record has no stored file.
var ErrNoAttachment = errors.New("record has no attachment")
