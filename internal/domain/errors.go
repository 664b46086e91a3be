package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrModelNotLoaded is returned when a service is asked to predict without a loaded model
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrModelArtifact is returned when a serialized model artifact cannot be read or is malformed
	ErrModelArtifact = errors.New("invalid model artifact")

	// ErrImageDecode is returned when an uploaded ID image cannot be decoded
	ErrImageDecode = errors.New("image could not be decoded")

	// ErrImageNotFound is returned when an image_path does not point at a readable file
	ErrImageNotFound = errors.New("image file not found")

	// ErrImagePathDisabled is returned when image_path requests are turned off in configuration
	ErrImagePathDisabled = errors.New("image_path requests are disabled")

	// ErrOCRFailure is returned when the OCR engine fails on an image
	ErrOCRFailure = errors.New("OCR engine failed")

	// ErrEncoderFailure is returned when the embedding encoder fails
	ErrEncoderFailure = errors.New("embedding encoder failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
