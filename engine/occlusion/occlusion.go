// Package occlusion decides whether a star's lens glow is hidden behind a body and how large
// the glow is drawn. Every test runs on the CPU in float64 against bounding spheres.
package occlusion

import (
	"math"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Glow sizing constants.
const (
	SolarDiameterKm    = 1392684.0
	SolarTemperatureK  = 5778.0
	glowScale          = 0.016
	referenceDistanceM = 1e9
)

// Sphere is a bounding sphere that can hide a star.
type Sphere struct {
	Position mgl64.Vec3
	Radius   float64
}

// Occludes reports whether s intersects the segment from camera to star.
//
// Parameters:
//   - camera: the camera's world position
//   - star: the star's world position
//   - s: the occluding sphere
//
// Returns:
//   - bool: true if an intersection lies strictly between camera and star
func Occludes(camera, star mgl64.Vec3, s Sphere) bool {
	toStar := star.Sub(camera)
	dist := toStar.Len()
	if dist == 0 {
		return false
	}
	dir := toStar.Mul(1 / dist)

	oc := camera.Sub(s.Position)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - 4*c
	if disc < 0 {
		return false
	}
	root := math.Sqrt(disc)
	t1 := (-b - root) / 2
	t2 := (-b + root) / 2
	return (t1 > 0 && t1 < dist) || (t2 > 0 && t2 < dist)
}

// StarVisible reports whether no sphere hides the star from the camera.
//
// Parameters:
//   - camera: the camera's world position
//   - star: the star's world position
//   - occluders: the candidate bodies
//
// Returns:
//   - bool: true if the star is visible
func StarVisible(camera, star mgl64.Vec3, occluders []Sphere) bool {
	for _, s := range occluders {
		if Occludes(camera, star, s) {
			return false
		}
	}
	return true
}

// LensGlowSize returns the glow size for a star of the given diameter (in solar diameters)
// and temperature seen from distanceM meters away.
//
// Parameters:
//   - diameterSolar: the star diameter in units of the solar diameter
//   - temperatureK: the star temperature in Kelvin
//   - distanceM: the camera distance in meters
//
// Returns:
//   - float64: the glow half extent in NDC before the distance modifier
func LensGlowSize(diameterSolar, temperatureK, distanceM float64) float64 {
	d := distanceM / 1000
	diameter := diameterSolar * SolarDiameterKm
	luminosity := diameter * diameter * math.Pow(temperatureK/SolarTemperatureK, 4)
	return glowScale * math.Pow(luminosity, 0.25) / math.Pow(d, 0.3)
}

// DistanceModifier scales glows up when the camera is close: 1e9 m maps to 1, clamped to
// [0.1, 5].
func DistanceModifier(distanceM float64) float64 {
	if distanceM <= 0 {
		return 5
	}
	return common.Clamp(referenceDistanceM/distanceM, 0.1, 5)
}

// GlowExtent combines LensGlowSize and DistanceModifier into the NDC half extent written into
// the lens glow uniform. Occluded stars get a zero extent.
//
// Parameters:
//   - camera: the camera's world position
//   - star: the star's world position
//   - diameterSolar: the star diameter in solar diameters
//   - temperatureK: the star temperature
//   - occluders: bodies that may hide the star
//
// Returns:
//   - [2]float32: the glow size, equal in both axes
func GlowExtent(camera, star mgl64.Vec3, diameterSolar, temperatureK float64, occluders []Sphere) [2]float32 {
	if !StarVisible(camera, star, occluders) {
		return [2]float32{}
	}
	dist := star.Sub(camera).Len()
	if dist == 0 {
		return [2]float32{}
	}
	size := float32(LensGlowSize(diameterSolar, temperatureK, dist) * DistanceModifier(dist))
	return [2]float32{size, size}
}
