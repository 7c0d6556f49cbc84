package sensor

import (
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// RegisterOnRunStart registers callbacks for run start events.
func (s *Sensor) RegisterOnRunStart(callback ...func(types.ComponentMetadata, int, int)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnRunStart = append(s.OnRunStart, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnRunStart invokes registered run start callbacks.
func (s *Sensor) InvokeOnRunStart(c types.ComponentMetadata, files int, workers int) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnRunStart) {
		if cb == nil {
			continue
		}
		cb(c, files, workers)
	}
}

// RegisterOnFileStart registers callbacks for file start events.
func (s *Sensor) RegisterOnFileStart(callback ...func(types.ComponentMetadata, string)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnFileStart = append(s.OnFileStart, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnFileStart invokes registered file start callbacks.
func (s *Sensor) InvokeOnFileStart(c types.ComponentMetadata, input string) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnFileStart) {
		if cb == nil {
			continue
		}
		cb(c, input)
	}
}

// RegisterOnFileComplete registers callbacks for file completion events.
func (s *Sensor) RegisterOnFileComplete(callback ...func(types.ComponentMetadata, types.FileResult)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnFileComplete = append(s.OnFileComplete, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnFileComplete invokes registered file completion callbacks.
func (s *Sensor) InvokeOnFileComplete(c types.ComponentMetadata, result types.FileResult) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnFileComplete) {
		if cb == nil {
			continue
		}
		cb(c, result)
	}
}

// RegisterOnFileError registers callbacks for file failure events.
func (s *Sensor) RegisterOnFileError(callback ...func(types.ComponentMetadata, string, error)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnFileError = append(s.OnFileError, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnFileError invokes registered file failure callbacks.
func (s *Sensor) InvokeOnFileError(c types.ComponentMetadata, input string, err error) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnFileError) {
		if cb == nil {
			continue
		}
		cb(c, input, err)
	}
}

// RegisterOnCellDegraded registers callbacks for degraded cell events.
func (s *Sensor) RegisterOnCellDegraded(callback ...func(types.ComponentMetadata, types.CellRecord)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnCellDegraded = append(s.OnCellDegraded, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnCellDegraded invokes registered degraded cell callbacks.
func (s *Sensor) InvokeOnCellDegraded(c types.ComponentMetadata, rec types.CellRecord) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnCellDegraded) {
		if cb == nil {
			continue
		}
		cb(c, rec)
	}
}

// RegisterOnUpload registers callbacks for object upload events.
func (s *Sensor) RegisterOnUpload(callback ...func(types.ComponentMetadata, string, int64, time.Duration)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnUpload = append(s.OnUpload, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnUpload invokes registered object upload callbacks.
func (s *Sensor) InvokeOnUpload(c types.ComponentMetadata, key string, bytes int64, dur time.Duration) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnUpload) {
		if cb == nil {
			continue
		}
		cb(c, key, bytes, dur)
	}
}

// RegisterOnRunComplete registers callbacks for run completion events.
func (s *Sensor) RegisterOnRunComplete(callback ...func(types.ComponentMetadata, int, int, time.Duration)) {
	if len(callback) == 0 {
		return
	}

	s.callbackLock.Lock()
	s.OnRunComplete = append(s.OnRunComplete, callback...)
	s.callbackLock.Unlock()
}

// InvokeOnRunComplete invokes registered run completion callbacks.
func (s *Sensor) InvokeOnRunComplete(c types.ComponentMetadata, completed int, failed int, elapsed time.Duration) {
	for _, cb := range snapshotCallbacks(&s.callbackLock, s.OnRunComplete) {
		if cb == nil {
			continue
		}
		cb(c, completed, failed, elapsed)
	}
}
