package geo

import "errors"

var (
	// ErrInvalidCoordinate is returned when a latitude or longitude is not a finite number
	// or a latitude falls outside [-90, 90].
	ErrInvalidCoordinate = errors.New("invalid coordinates: latitude must be [-90, 90] and values must be finite")

	// ErrEmptyPolyline is returned when a polyline is built from no points.
	ErrEmptyPolyline = errors.New("polyline must be initialized with at least one point")

	ErrRatioOutOfRange = errors.New("ratio must be between 0.0 and 1.0")
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotConnected is returned when an angle is requested between lines that share no endpoint.
	ErrNotConnected = errors.New("lines must share an endpoint to calculate angle")

	// ErrNotJoined is returned by DeltaAngle when the first line does not end where the second starts.
	ErrNotJoined = errors.New("lines must be joined end to start to measure angle delta")

	ErrEndpointsMismatch = errors.New("cannot splice polylines together, endpoints do not match")
)
