/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package fakedata

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

const DEFAULT_REGISTRATION_PATTERN = `[A-Z]{2}-[0-9]{5}`

var vehicleModels = map[string][]string{
	"Audi":       {"A3", "A4", "A6", "Q5", "Q7"},
	"BMW":        {"1 Series", "3 Series", "5 Series", "X3", "X5"},
	"Ford":       {"Fiesta", "Focus", "Mondeo", "Kuga", "Mustang"},
	"Honda":      {"Civic", "Accord", "CR-V", "Jazz"},
	"Mercedes":   {"A-Class", "C-Class", "E-Class", "GLC"},
	"Peugeot":    {"208", "308", "3008", "5008"},
	"Renault":    {"Clio", "Megane", "Captur", "Kadjar"},
	"Tesla":      {"Model 3", "Model S", "Model X", "Model Y"},
	"Toyota":     {"Yaris", "Corolla", "Camry", "RAV4", "Prius"},
	"Volkswagen": {"Polo", "Golf", "Passat", "Tiguan"},
}

var vehicleBrands = func() []string {
	brands := lo.Keys(vehicleModels)
	sort.Strings(brands)
	return brands
}()

var (
	vehicleTypes     = []string{"hatchback", "sedan", "estate", "suv", "coupe", "convertible", "van", "pickup"}
	vehicleFuelTypes = []string{"petrol", "diesel", "electric", "hybrid", "lpg"}
	vehicleGearBoxes = []string{"manual", "automatic"}
)

func registerVehicleGenerators() {
	register("vehicleBrand", noArgs(func(l *Library) any { return l.pick(vehicleBrands) }))
	register("vehicleModel", noArgs(func(l *Library) any {
		return l.pick(vehicleModels[l.pick(vehicleBrands)])
	}))
	register("vehicle", noArgs(func(l *Library) any {
		brand := l.pick(vehicleBrands)
		return brand + " " + l.pick(vehicleModels[brand])
	}))
	register("vehicleType", noArgs(func(l *Library) any { return l.pick(vehicleTypes) }))
	register("vehicleFuelType", noArgs(func(l *Library) any { return l.pick(vehicleFuelTypes) }))
	register("vehicleGearBoxType", noArgs(func(l *Library) any { return l.pick(vehicleGearBoxes) }))
	register("vehicleDoorCount", noArgs(func(l *Library) any { return 2 + 2*l.rng.IntN(2) + l.rng.IntN(2) }))
	register("vehicleRegistration", func(l *Library, args []string) (any, error) {
		pattern := DEFAULT_REGISTRATION_PATTERN
		if len(args) > 0 && args[0] != "" {
			pattern = strings.Join(args, ",")
		}
		return l.regexify(pattern)
	})
}

func (l *Library) pick(values []string) string {
	return values[l.rng.IntN(len(values))]
}
