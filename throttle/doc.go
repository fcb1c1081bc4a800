// Package throttle fornece os adapters de rede (TCP) do throttler.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net)
//   - application: casos de uso (Dispatcher, RateReporter) sem net
//   - infra: implementações concretas (token bucket, janela auto-expirável, stats)
//   - throttle (este pacote): envio TCP + servidor que conta conexões + wiring
//
// Fluxo no cliente:
//
//   1) O Dispatcher pede admissão ao RateLimiter
//   2) Loga "<seq>: sending request to server" e dispara TCPSender.Send sem esperar
//   3) O envio abre a conexão, escreve o número em decimal e fecha
//
// Fluxo no servidor:
//
//   1) Cada conexão aceita chama RequestWindow.Record uma vez e é fechada
//   2) O RateReporter loga "<n> requests/second" a cada intervalo
package throttle
