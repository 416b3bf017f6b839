package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/axle/pkg/definition"
)

func mustParse(t *testing.T, data string) *definition.Document {
	t.Helper()
	doc, err := definition.Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

func TestExtractServices(t *testing.T) {
	doc := mustParse(t, `{
		"someip": {
			"EngineService": {
				"service_id": 100,
				"methods": {"Start": {"id": 1}, "Stop": {"id": 2}},
				"events":  {"StatusChanged": {"id": 32001}}
			},
			"ClimateService": {
				"service_id": 200,
				"methods": {"SetTarget": {"id": 1}}
			}
		}
	}`)

	services, err := ExtractServices(doc, "someip/vehicle.json")
	require.NoError(t, err)
	require.Len(t, services, 2)

	// Sorted by block name: ClimateService first.
	assert.Equal(t, "ClimateService", services[0].Name)
	assert.Equal(t, uint32(200), services[0].ServiceID)

	engine := services[1]
	assert.Equal(t, "EngineService", engine.Name)
	assert.Equal(t, uint32(100), engine.ServiceID)
	assert.Equal(t, "someip/vehicle.json", engine.Origin)
	assert.Equal(t, map[uint32]string{1: "Start", 2: "Stop"}, engine.Methods)
	assert.Equal(t, map[uint32]string{32001: "StatusChanged"}, engine.Events)
}

func TestExtractServicesSkipsIncompleteDefinitions(t *testing.T) {
	doc := mustParse(t, `{
		"someip": {
			"Template":  {"methods": {"Ping": {"id": 1}}},
			"Real":      {"service_id": 7, "methods": {"Go": {"id": 1}, "Draft": {}}}
		}
	}`)

	services, err := ExtractServices(doc, "someip/mixed.json")
	require.NoError(t, err)
	require.Len(t, services, 1, "block without a service id must yield no entity")

	svc := services[0]
	assert.Equal(t, "Real", svc.Name)
	assert.Equal(t, map[uint32]string{1: "Go"}, svc.Methods, "member without an id must be skipped")
}

func TestExtractServicesDuplicateMethodID(t *testing.T) {
	doc := mustParse(t, `{
		"someip": {
			"EngineService": {
				"service_id": 100,
				"methods": {"Start": {"id": 3}, "Stop": {"id": 3}}
			}
		}
	}`)

	services, err := ExtractServices(doc, "someip/engine.json")
	assert.Nil(t, services, "a document with an internal conflict contributes nothing")
	require.Error(t, err)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindDuplicateMethodID, v.Kind)
	assert.Equal(t, uint32(3), v.ID)
	assert.Equal(t, "Stop", v.Name, "sorted walk sees Start first, Stop collides")
	assert.Equal(t, "Start", v.Conflict)
	assert.Equal(t, "someip/engine.json", v.Origin)
	assert.Contains(t, v.Message, `already used by method "Start"`)
}

func TestExtractServicesDuplicateEventID(t *testing.T) {
	doc := mustParse(t, `{
		"someip": {
			"EngineService": {
				"service_id": 100,
				"events": {"Overheat": {"id": 9}, "Cooldown": {"id": 9}}
			}
		}
	}`)

	_, err := ExtractServices(doc, "someip/engine.json")
	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindDuplicateEventID, v.Kind)
	assert.Equal(t, uint32(9), v.ID)
	assert.Equal(t, "Overheat", v.Name)
	assert.Equal(t, "Cooldown", v.Conflict)
}

func TestExtractServicesIndependentIDSpaces(t *testing.T) {
	t.Run("method and event may share an id", func(t *testing.T) {
		doc := mustParse(t, `{
			"someip": {
				"Svc": {
					"service_id": 1,
					"methods": {"Act": {"id": 5}},
					"events":  {"Happened": {"id": 5}}
				}
			}
		}`)

		services, err := ExtractServices(doc, "someip/svc.json")
		require.NoError(t, err)
		require.Len(t, services, 1)
		assert.Equal(t, "Act", services[0].Methods[5])
		assert.Equal(t, "Happened", services[0].Events[5])
	})

	t.Run("sibling interfaces may reuse member ids", func(t *testing.T) {
		doc := mustParse(t, `{
			"someip": {
				"A": {"service_id": 1, "methods": {"M": {"id": 1}}},
				"B": {"service_id": 2, "methods": {"M": {"id": 1}}}
			}
		}`)

		services, err := ExtractServices(doc, "someip/pair.json")
		require.NoError(t, err)
		assert.Len(t, services, 2)
	})

	t.Run("sibling interfaces sharing a service id extract cleanly", func(t *testing.T) {
		// Cross-entity service id uniqueness belongs to the registry.
		doc := mustParse(t, `{
			"someip": {
				"A": {"service_id": 1},
				"B": {"service_id": 1}
			}
		}`)

		services, err := ExtractServices(doc, "someip/clash.json")
		require.NoError(t, err)
		assert.Len(t, services, 2)
	})
}

func TestExtractServicesEmptyInputs(t *testing.T) {
	services, err := ExtractServices(mustParse(t, `{}`), "someip/none.json")
	require.NoError(t, err)
	assert.Nil(t, services)

	services, err = ExtractServices(mustParse(t, `{"someip": {}}`), "someip/empty.json")
	require.NoError(t, err)
	assert.Nil(t, services)

	services, err = ExtractServices(nil, "someip/nil.json")
	require.NoError(t, err)
	assert.Nil(t, services)
}

func TestExtractDiagnostic(t *testing.T) {
	doc := mustParse(t, `{
		"diag": {
			"job": {
				"read_vin":    {"sub_service_id": 4660},
				"clear_codes": {"sub_service_id": 4661},
				"pending":     {}
			},
			"dtc": {
				"engine_overheat": {"id": 123456}
			}
		}
	}`)

	diag, err := ExtractDiagnostic(doc, "diag/powertrain.json")
	require.NoError(t, err)
	require.NotNil(t, diag)

	assert.Equal(t, "diag/powertrain.json", diag.Origin)
	assert.Equal(t, map[uint32]string{4660: "read_vin", 4661: "clear_codes"}, diag.Jobs)
	assert.Equal(t, map[uint32]string{123456: "engine_overheat"}, diag.DTCs)
}

func TestExtractDiagnosticYieldsNothing(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no diagnostics section", `{"someip": {}}`},
		{"empty diagnostics section", `{"diag": {}}`},
		{"empty job and dtc maps", `{"diag": {"job": {}, "dtc": {}}}`},
		{"entries without identifiers", `{"diag": {"job": {"a": {}}, "dtc": {"b": {}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag, err := ExtractDiagnostic(mustParse(t, tt.data), "diag/x.json")
			require.NoError(t, err)
			assert.Nil(t, diag, "no identifiers means no entity, and no error")
		})
	}
}

func TestExtractDiagnosticDuplicateJobID(t *testing.T) {
	doc := mustParse(t, `{
		"diag": {
			"job": {
				"alpha": {"sub_service_id": 10},
				"beta":  {"sub_service_id": 10}
			}
		}
	}`)

	diag, err := ExtractDiagnostic(doc, "diag/jobs.json")
	assert.Nil(t, diag)

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindDuplicateJobID, v.Kind)
	assert.Equal(t, uint32(10), v.ID)
	assert.Equal(t, "beta", v.Name)
	assert.Equal(t, "alpha", v.Conflict)
	assert.Equal(t, "diag/jobs.json", v.Origin)
}

func TestExtractDiagnosticDuplicateDTCID(t *testing.T) {
	doc := mustParse(t, `{
		"diag": {
			"dtc": {
				"overheat": {"id": 77},
				"overvolt": {"id": 77}
			}
		}
	}`)

	_, err := ExtractDiagnostic(doc, "diag/codes.json")
	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, KindDuplicateDTCID, v.Kind)
	assert.Equal(t, uint32(77), v.ID)
	assert.Equal(t, "overvolt", v.Name)
	assert.Equal(t, "overheat", v.Conflict)
}

func TestExtractDiagnosticJobAndDTCSpacesIndependent(t *testing.T) {
	doc := mustParse(t, `{
		"diag": {
			"job": {"j": {"sub_service_id": 42}},
			"dtc": {"d": {"id": 42}}
		}
	}`)

	diag, err := ExtractDiagnostic(doc, "diag/shared.json")
	require.NoError(t, err)
	require.NotNil(t, diag)
	assert.Equal(t, "j", diag.Jobs[42])
	assert.Equal(t, "d", diag.DTCs[42])
}
