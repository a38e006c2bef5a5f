package server

import "errors"

var (
	errNoForecastData   = errors.New("failed to fetch any weather data")
	errInvalidLatitude  = errors.New("latitude must be a number between -90 and 90")
	errInvalidLongitude = errors.New("longitude must be a number between -180 and 180")
)
