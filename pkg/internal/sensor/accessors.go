package sensor

import "github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"

// GetComponentMetadata returns the sensor metadata.
func (s *Sensor) GetComponentMetadata() types.ComponentMetadata {
	s.metadataLock.Lock()
	metadata := s.componentMetadata
	s.metadataLock.Unlock()
	return metadata
}

// SetComponentMetadata sets the sensor name and id.
func (s *Sensor) SetComponentMetadata(name string, id string) {
	s.metadataLock.Lock()
	s.componentMetadata.Name = name
	s.componentMetadata.ID = id
	s.metadataLock.Unlock()
}

// GetMeters returns a copy of connected meters.
func (s *Sensor) GetMeters() []types.Meter {
	return s.snapshotMeters()
}
