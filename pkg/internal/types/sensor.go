package types

import "time"

// Sensor receives lifecycle callbacks from the dataset builder and the dispatcher.
type Sensor interface {
	GetComponentMetadata() ComponentMetadata
	SetComponentMetadata(name string, id string)

	RegisterOnRunStart(...func(c ComponentMetadata, files int, workers int))
	RegisterOnFileStart(...func(c ComponentMetadata, input string))
	RegisterOnFileComplete(...func(c ComponentMetadata, result FileResult))
	RegisterOnFileError(...func(c ComponentMetadata, input string, err error))
	RegisterOnCellDegraded(...func(c ComponentMetadata, rec CellRecord))
	RegisterOnUpload(...func(c ComponentMetadata, key string, bytes int64, dur time.Duration))
	RegisterOnRunComplete(...func(c ComponentMetadata, completed int, failed int, elapsed time.Duration))

	InvokeOnRunStart(c ComponentMetadata, files int, workers int)
	InvokeOnFileStart(c ComponentMetadata, input string)
	InvokeOnFileComplete(c ComponentMetadata, result FileResult)
	InvokeOnFileError(c ComponentMetadata, input string, err error)
	InvokeOnCellDegraded(c ComponentMetadata, rec CellRecord)
	InvokeOnUpload(c ComponentMetadata, key string, bytes int64, dur time.Duration)
	InvokeOnRunComplete(c ComponentMetadata, completed int, failed int, elapsed time.Duration)

	ConnectLogger(...Logger)
	ConnectMeter(...Meter)
}
