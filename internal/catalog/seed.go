package catalog

import (
	"github.com/angelmondragon/its27-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/its27-backend/pkg/db/types"
)

func desc(s string) *string { return &s }

var seedItems = []models.CatalogItem{
	{ID: 1, Name: "Banda de Plata Minimalista", Category: "Anillo", Price: 45000, ImageID: 101, Description: desc("Una banda de plata pulida y elegante diseñada para el día a día."), IsFeatured: true},
	{ID: 2, Name: "Collar Perla Eclipse", Category: "Collar", Price: 75000, ImageID: 102, Description: desc("Una impresionante perla suspendida en un engaste de plata oxidada oscura.")},
	{ID: 3, Name: "Aretes Geométricos Oro", Category: "Aretes", Price: 28000, ImageID: 103, Description: desc("Formas geométricas modernas elaboradas en oro de 14k para una declaración sutil.")},
	{ID: 4, Name: "Anillo Sello Obsidiana", Category: "Anillo", Price: 62000, ImageID: 104, Description: desc("Un audaz anillo de sello con una piedra de obsidiana suave y oscura.")},
	{ID: 5, Name: "Set Nupcial Medianoche", Category: "Conjunto", Price: 230000, ImageID: 105, Description: desc("La colección completa de medianoche, perfecta para la novia moderna."), IsFeatured: true},
	{ID: 6, Name: "Aretes Gota Nova", Category: "Aretes", Price: 48000, ImageID: 106, Description: desc("Aretes delicados que atrapan la luz con cada movimiento.")},
	{ID: 7, Name: "Cadena Horizonte", Category: "Collar", Price: 56000, ImageID: 107, Description: desc("Una cadena de eslabones única inspirada en el horizonte que se asienta perfectamente.")},
	{ID: 8, Name: "Banda Clásica de Oro", Category: "Anillo", Price: 108000, ImageID: 108, Description: desc("Lujo atemporal. Una banda de oro macizo que nunca pasa de moda.")},
	{ID: 9, Name: "Colgante Luz Estelar", Category: "Collar", Price: 69000, ImageID: 109, Description: desc("Un pequeño diamante engastado en un patrón de estallido estelar en una cadena delicada.")},
	{ID: 10, Name: "Aretes Ónix", Category: "Aretes", Price: 34000, ImageID: 110, Description: desc("Piedras de ónix negro profundo engastadas en biseles de plata esterlina.")},
	{ID: 11, Name: "Conjunto Duo Tono", Category: "Conjunto", Price: 145000, ImageID: 111, Description: desc("Un conjunto de metales mixtos que combina la calidez del oro con la frescura de la plata.")},
	{ID: 12, Name: "Anillo Ola", Category: "Anillo", Price: 38000, ImageID: 112, Description: desc("Inspirado en el océano, este anillo presenta una forma de ola fluida y orgánica.")},
}

// Seed returns a fresh copy of the bundled sample catalog shown when the
// store is unreachable or empty.
func Seed() []models.CatalogItem {
	out := make([]models.CatalogItem, len(seedItems))
	for i, item := range seedItems {
		item.Images = dbtypes.StringList{}
		if item.Description != nil {
			item.Description = desc(*item.Description)
		}
		out[i] = item
	}
	return out
}

// SeedCategories lists the categories present in the sample catalog in first-seen order.
func SeedCategories() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, item := range seedItems {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

func seedItem(id int64) (models.CatalogItem, bool) {
	for _, item := range Seed() {
		if item.ID == id {
			return item, true
		}
	}
	return models.CatalogItem{}, false
}
