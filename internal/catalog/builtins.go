package catalog

import (
	"disasterhub/backend/pkg/models"
)

// BuiltinDefinitions returns the predefined assessment workflows. Step ids
// follow the step_1..step_n convention used across instance progress views.
func BuiltinDefinitions() []models.WorkflowDefinition {
	return []models.WorkflowDefinition{
		{
			Name:        "fire_risk_assessment",
			Description: "NFDRS4 fire risk assessment pipeline",
			Version:     "1.0.0",
			Parameters: models.ParameterSchema{
				Properties: map[string]models.ParameterSpec{
					"location":           {Type: "string", Description: "Location of the fire event"},
					"coordinates":        {Type: "object", Description: "Geographic coordinates"},
					"fuel_type":          {Type: "string", Description: "Fuel type"},
					"weather_conditions": {Type: "string", Description: "Weather conditions"},
				},
				Required: []string{"location", "coordinates"},
			},
			Steps: []models.StepTemplate{
				{ID: "step_1", Name: "fetch_fire_event_data", Description: "Fetch fire event data from the database"},
				{ID: "step_2", Name: "call_nfdrs4_risk_assessment", Description: "Invoke the NFDRS4 fire risk assessment tool"},
				{ID: "step_3", Name: "save_assessment_result", Description: "Save the risk assessment result"},
				{ID: "step_4", Name: "publish_to_geoserver", Description: "Publish the result layer for the frontend"},
			},
		},
		{
			Name:        "flood_risk_assessment",
			Description: "LISFLOOD flood risk assessment pipeline",
			Version:     "1.0.0",
			Parameters: models.ParameterSchema{
				Properties: map[string]models.ParameterSpec{
					"location":           {Type: "string", Description: "Location of the flood event"},
					"coordinates":        {Type: "object", Description: "Geographic coordinates"},
					"water_level":        {Type: "number", Description: "Water level"},
					"rainfall_intensity": {Type: "string", Description: "Rainfall intensity"},
				},
				Required: []string{"location", "coordinates"},
			},
			Steps: []models.StepTemplate{
				{ID: "step_1", Name: "fetch_flood_event_data", Description: "Fetch flood event data from the database"},
				{ID: "step_2", Name: "call_lisflood_risk_assessment", Description: "Invoke the LISFLOOD flood risk assessment tool"},
				{ID: "step_3", Name: "save_assessment_result", Description: "Save the risk assessment result"},
				{ID: "step_4", Name: "publish_to_geoserver", Description: "Publish the result layer for the frontend"},
			},
		},
		{
			Name:        "climate_risk_assessment",
			Description: "CLIMADA climate risk assessment pipeline",
			Version:     "1.0.0",
			Parameters: models.ParameterSchema{
				Properties: map[string]models.ParameterSpec{
					"location":     {Type: "string", Description: "Location of the climate event"},
					"coordinates":  {Type: "object", Description: "Geographic coordinates"},
					"climate_type": {Type: "string", Description: "Climate event type"},
					"wind_speed":   {Type: "number", Description: "Wind speed"},
				},
				Required: []string{"location", "coordinates"},
			},
			Steps: []models.StepTemplate{
				{ID: "step_1", Name: "fetch_climate_event_data", Description: "Fetch climate event data from the database"},
				{ID: "step_2", Name: "call_climada_risk_quantification", Description: "Invoke the CLIMADA risk quantification tool"},
				{ID: "step_3", Name: "save_assessment_result", Description: "Save the risk assessment result"},
				{ID: "step_4", Name: "publish_to_geoserver", Description: "Publish the result layer for the frontend"},
			},
		},
		{
			Name:        "comprehensive_disaster_assessment",
			Description: "Multi-model comprehensive disaster assessment",
			Version:     "1.0.0",
			Parameters: models.ParameterSchema{
				Properties: map[string]models.ParameterSpec{
					"location":       {Type: "string", Description: "Location of the disaster"},
					"coordinates":    {Type: "object", Description: "Geographic coordinates"},
					"disaster_types": {Type: "array", Description: "Disaster types to assess"},
				},
				Required: []string{"location", "coordinates", "disaster_types"},
			},
			Steps: []models.StepTemplate{
				{ID: "step_1", Name: "fetch_comprehensive_data", Description: "Fetch combined disaster data from the database"},
				{ID: "step_2", Name: "parallel_model_assessment", Description: "Run the fire, flood and climate models"},
				{ID: "step_3", Name: "integrate_results", Description: "Integrate the per-model assessment results"},
				{ID: "step_4", Name: "save_integrated_result", Description: "Save the integrated assessment"},
				{ID: "step_5", Name: "publish_comprehensive_layer", Description: "Publish the combined result layer"},
			},
		},
	}
}
