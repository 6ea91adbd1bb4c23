package schema

// Column names shared by the generators, the schemas and the condition sampler.
const (
	Temperature      = "Temperature"
	OxygenPercentage = "Oxygen_Percentage"
	SoilQuality      = "Soil_Quality"
	WaterPresence    = "Water_Presence"
	UVRadiation      = "UV_Radiation"
	WindSpeed        = "Wind_Speed"
	SoilNutrients    = "Soil_Nutrients"
	Pressure         = "Pressure"
	SolarRadiation   = "Solar_Radiation"
	Gravity          = "Gravity"

	Time             = "Time"
	Precipitation    = "Precipitation"
	Sunlight         = "Sunlight"
	CropType         = "Crop_Type"
	SoilCondition    = "Soil_Condition"
	WeatherCondition = "Weather_Condition"
	CropHealth       = "Crop_Health"

	WaterQuality   = "Water_Quality"
	NutrientLevels = "Nutrient_Levels"
	OxygenContent  = "Oxygen_Content"
	WaterLevel     = "Water_Level"
	WasteReduction = "Waste_Reduction"
)

// Habitat is the per-area environmental telemetry schema. Labels are derived,
// so it has no target column.
var Habitat = FeatureSchema{
	Name: "habitat",
	Fields: []Field{
		{Temperature, Numeric},
		{OxygenPercentage, Numeric},
		{SoilQuality, Numeric},
		{WaterPresence, Numeric},
		{UVRadiation, Numeric},
		{WindSpeed, Numeric},
		{SoilNutrients, Numeric},
		{Pressure, Numeric},
		{SolarRadiation, Numeric},
		{Gravity, Numeric},
	},
	Drop: []string{Time},
}

// Farming predicts crop health from growing conditions.
var Farming = FeatureSchema{
	Name: "farming",
	Fields: []Field{
		{Temperature, Numeric},
		{Precipitation, Numeric},
		{Sunlight, Numeric},
		{SoilQuality, Numeric},
		{CropType, Categorical},
		{SoilCondition, Categorical},
		{WeatherCondition, Categorical},
	},
	Target: CropHealth,
	Drop:   []string{Time},
}

// Recycling predicts waste reduction efficiency from water telemetry.
var Recycling = FeatureSchema{
	Name: "recycling",
	Fields: []Field{
		{WaterQuality, Numeric},
		{NutrientLevels, Numeric},
		{OxygenContent, Numeric},
		{WaterLevel, Numeric},
	},
	Target: WasteReduction,
	Drop:   []string{Time},
}
