package generation

// Model identifiers understood by the backends. The mock echoes whatever it
// is given; the HTTP backend forwards the name to the provider.
const (
	ModelGeneral      = "clinical-general"
	ModelHighAcuity   = "clinical-high-acuity"
	ModelVision       = "clinical-vision"
	ModelMentalHealth = "clinical-mental-health"
)

// RouteModel picks the model for a turn. Pure function of the turn's shape:
// image input needs the vision model, emergencies and mental-health turns get
// the slower high-accuracy variants, everything else the general model.
func RouteModel(hasImage, isEmergency, isMentalHealth bool) string {
	switch {
	case hasImage:
		return ModelVision
	case isEmergency:
		return ModelHighAcuity
	case isMentalHealth:
		return ModelMentalHealth
	default:
		return ModelGeneral
	}
}
