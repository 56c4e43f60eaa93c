// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Cursor: agenda compartilhada lock-free (CAS sobre um contador de ticks)
//   - LimiterSchedule: a mesma regra de espaçamento usando golang.org/x/time/rate
//   - Store: uma agenda por chave, com limpeza periódica
//   - ChanPool: semáforo simples para limitar chamadas em andamento
//   - MemoryStatsStore / RedisStatsStore: estatísticas de espera
package infra
