package registry

import (
	"disasterhub/backend/pkg/models"
)

// DefaultFleet returns the built-in capability service table. Each entry is a
// named scientific model server; the execution environment is an opaque label
// carried through for display only.
func DefaultFleet() []models.CapabilityService {
	return []models.CapabilityService{
		{
			Name:                 "nfdrs4",
			DisplayName:          "NFDRS4 Fire Danger Rating Service",
			ExecutionEnvironment: "NFDRS4",
			FilesystemPath:       "/data/models/NFDRS4",
			Port:                 8001,
			Status:               models.ServiceStatusStopped,
		},
		{
			Name:                 "lisflood",
			DisplayName:          "LISFLOOD Flood Modelling Service",
			ExecutionEnvironment: "lisflood",
			FilesystemPath:       "/data/models/Lisflood",
			Port:                 8002,
			Status:               models.ServiceStatusStopped,
		},
		{
			Name:                 "climada",
			DisplayName:          "CLIMADA Climate Risk Service",
			ExecutionEnvironment: "climada",
			FilesystemPath:       "/data/models/CLIMADA",
			Port:                 8003,
			Status:               models.ServiceStatusStopped,
		},
		{
			Name:                 "aurora",
			DisplayName:          "Aurora Weather Forecast Service",
			ExecutionEnvironment: "aurora",
			FilesystemPath:       "/data/models/Aurora",
			Port:                 8004,
			Status:               models.ServiceStatusStopped,
		},
		{
			Name:                 "postgis",
			DisplayName:          "PostGIS Spatial Data Service",
			ExecutionEnvironment: "postgis",
			FilesystemPath:       "/data/models/PostGIS",
			Port:                 8005,
			Status:               models.ServiceStatusStopped,
		},
		{
			Name:                 "cell2fire",
			DisplayName:          "Cell2Fire Spread Simulation Service",
			ExecutionEnvironment: "cell2fire",
			FilesystemPath:       "/data/models/Cell2Fire",
			Port:                 8006,
			Status:               models.ServiceStatusStopped,
		},
		{
			Name:                 "filesystem",
			DisplayName:          "Shared Filesystem Service",
			ExecutionEnvironment: "base",
			FilesystemPath:       "/data/models",
			Port:                 8007,
			Status:               models.ServiceStatusStopped,
		},
	}
}
