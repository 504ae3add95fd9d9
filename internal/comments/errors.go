package comments

import "errors"

var ErrAuthorNotFound = errors.New("comment author does not exist")
