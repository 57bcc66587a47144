package service

import "gorm.io/datatypes"

// datatypesJSON wraps a value for storage in a typed JSON column.
func datatypesJSON[T any](value T) datatypes.JSONType[T] {
	return datatypes.NewJSONType(value)
}
