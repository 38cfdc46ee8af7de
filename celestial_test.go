package stellarforge

import (
	"testing"
)

func TestCelestialObjectFromString(t *testing.T) {
	for _, name := range []string{"Sun", "earth", "MARS", "Jupiter"} {
		if _, err := CelestialObjectFromString(name); err != nil {
			t.Fatalf("could not resolve %s: %s", name, err)
		}
	}
	if _, err := CelestialObjectFromString("Krypton"); err == nil {
		t.Fatal("resolved an undefined body")
	}
	body, _ := CelestialObjectFromString("earth")
	if !body.Equals(Earth) {
		t.Fatal("earth did not resolve to Earth")
	}
	if body.Equals(Mars) {
		t.Fatal("Earth equals Mars")
	}
}

func TestCelestialConstants(t *testing.T) {
	// Earth's mass from μ/G, about 5.97e24 kg.
	if !floatsEqual(Earth.Mass()/EarthMass, 1, 1e-2) {
		t.Fatalf("Earth mass = %e kg", Earth.Mass())
	}
	if !floatsEqual(Sun.Mass()/SolarMass, 1, 1e-2) {
		t.Fatalf("Sun mass = %e kg", Sun.Mass())
	}
	// Surface escape velocity, about 11.2 km/s.
	if !floatsEqual(Earth.EscapeVelocity(Earth.Radius), 11.18e3, 50) {
		t.Fatalf("Earth escape velocity = %f m/s", Earth.EscapeVelocity(Earth.Radius))
	}
	// One parsec is about 3.26 light years.
	if !floatsEqual(Parsec/LightYear, 3.262, 5e-3) {
		t.Fatalf("pc/ly = %f", Parsec/LightYear)
	}
	if Earth.String() == "" {
		t.Fatal("empty body string")
	}
}
