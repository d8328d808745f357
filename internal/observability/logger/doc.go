// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Init se llama una vez desde cmd/habo con el entorno y nivel de la config.
// Los middlewares HTTP inyectan un logger con request_id/method/path vía
// ToContext y el resto del código lo recupera con From(ctx):
//
//	log := logger.From(ctx).With(logger.Component("oidc"), logger.Op("ExchangeCode"))
//	log.Warn("degraded callback", logger.Degraded(true), logger.State(state))
//
// Sin contexto se usa L(). En tests se puede reemplazar con Set para observar
// las entradas (zaptest/observer).
package logger
