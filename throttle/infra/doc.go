// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - TokenBucket / FixedInterval: limitadores de admissão sobre um Clock
//   - XRate: limitador usando golang.org/x/time/rate
//   - RequestWindow: conjunto auto-expirável (um timer por entrada)
//   - SemaphorePool: semáforo (x/sync) para limite de envios simultâneos
//   - MemoryStatsStore / RedisStatsStore: estatísticas best-effort
package infra
