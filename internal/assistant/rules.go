package assistant

import "strings"

// Rule maps a set of trigger substrings to a canned reply
type Rule struct {
	Keywords []string
	Response string
}

// RuleTable is an ordered rule list; the first matching rule wins
type RuleTable []Rule

// Match returns the response of the first rule with a keyword contained in text.
// Matching is case-insensitive substring containment, not word matching.
func (t RuleTable) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range t {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Response, true
			}
		}
	}
	return "", false
}

const (
	demoPrecio     = "Nuestros productos tienen precios muy competitivos:\n• Nova Air Laptop: $899,000\n• Router Wave WiFi 6: $189,000\n• Reloj Pulse Pro: $299,000\n• AeroPods: $129,000\n\n¿Te interesa alguno en particular?"
	demoGarantia   = "✓ Garantía Hardware: 12 meses\n✓ Garantía Accesorios: 6 meses\n✓ Cobertura: defectos de fabricación\n\nPuedes reclamar presentando tu recibo en nuestro correo: soporte@novagadgets.co"
	demoEnvio      = "📦 Envíos en Colombia:\n• Ciudades principales: 2-5 días hábiles\n• Zonas remotas: hasta 7 días hábiles\n• Costo: varía según destino\n\n¿A qué ciudad necesitas envío?"
	demoDevolucion = "↩️ Política de devoluciones:\n✓ Plazo: 30 días desde la compra\n✓ Condición: producto intacto y embalaje original\n✓ Proceso: contacta a soporte@novagadgets.co\n\n¿Hay algún problema con tu pedido?"
	demoPago       = "💳 Formas de pago disponibles:\n• Tarjeta de crédito/débito\n• PSE (transferencia bancaria)\n• Contraentrega (en principales ciudades)\n\n¿Cuál prefieres?"
)

// DemoRules is the keyword table used when no provider key is configured.
// Each keyword is its own rule even where responses repeat.
var DemoRules = RuleTable{
	{Keywords: []string{"precio"}, Response: demoPrecio},
	{Keywords: []string{"costo"}, Response: demoPrecio},
	{Keywords: []string{"cuanto cuesta"}, Response: demoPrecio},
	{Keywords: []string{"garantia"}, Response: demoGarantia},
	{Keywords: []string{"envio"}, Response: demoEnvio},
	{Keywords: []string{"entrega"}, Response: demoEnvio},
	{Keywords: []string{"devolucion"}, Response: demoDevolucion},
	{Keywords: []string{"cambio"}, Response: demoDevolucion},
	{Keywords: []string{"pago"}, Response: demoPago},
	{Keywords: []string{"pagar"}, Response: demoPago},
}

// DemoDefaults are the replies picked at random when no demo keyword matches
var DemoDefaults = []string{
	"Puedo ayudarte con:\n• 💰 Precios de productos\n• 🚚 Información de envío\n• 📋 Políticas de garantía\n• 💳 Formas de pago\n• ↩️ Devoluciones\n\n¿En qué puedo asistirte?",
	"¿Tienes preguntas sobre nuestros productos NovaGadgets? Pregúntame sobre precios, envíos, garantía o políticas. ¡Estoy para ayudarte!",
	"No entendí bien tu pregunta. Intenta preguntar sobre:\n• Productos disponibles\n• Políticas de garantía\n• Envíos y entregas\n• Formas de pago\n\n¿Qué necesitas?",
}

// FallbackRules is the table used after a provider failure. It is kept apart
// from DemoRules: the two personas answer differently.
var FallbackRules = RuleTable{
	{
		Keywords: []string{"horario", "cuando atienden"},
		Response: "Atendemos lunes a viernes 8:00-18:00 y sabados 9:00-14:00. Tambien puedes escribir a soporte@novagadgets.co.",
	},
	{
		Keywords: []string{"garantia", "garant"},
		Response: "La garantia es de 12 meses para hardware y 6 meses para accesorios. Guarda la factura y el numero de serie para tramites.",
	},
	{
		Keywords: []string{"devolu", "cambio", "reembolso"},
		Response: "Puedes solicitar devolucion dentro de 30 dias si el producto esta intacto. Gestionamos un numero RMA y coordinamos la recoleccion.",
	},
	{
		Keywords: []string{"envio", "entrega", "transporte"},
		Response: "Enviamos en Colombia en 2 a 5 dias habiles; zonas remotas pueden tardar hasta 7 dias. Compartimos numero de guia para seguimiento.",
	},
	{
		Keywords: []string{"configurar", "instalar", "activar"},
		Response: "Sigue estos pasos rapidos: 1) Carga el dispositivo o conectalo a energia. 2) Descarga la app NovaGadgets. 3) Conecta a tu red WiFi de 2.4 o 5 GHz. 4) Actualiza firmware si la app lo sugiere.",
	},
	{
		Keywords: []string{"contacto", "humano", "asesor"},
		Response: "Puedes hablar con un agente al 01-8000-123-456 o escribir a soporte@novagadgets.co. Describe el modelo y el problema.",
	},
}

// FallbackDefault is returned when no fallback rule matches
const FallbackDefault = "Solo puedo ayudarte con informacion de soporte y ventas de NovaGadgets. Si necesitas algo mas especifico, dime el modelo y el problema."
