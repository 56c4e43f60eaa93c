// Package throttle fornece adapters HTTP (net/http) para pacing de chamadas.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (Rate, Schedule, Reservation, Sequence)
//   - application: casos de uso (sequência throttled, Queue/Do, Pacer) sem net/http
//   - infra: implementações concretas (Cursor, LimiterSchedule, Store, stats)
//   - throttle (este pacote): Transport (saída), Middleware (entrada), extração de chave
//
// Uso típico: um único Cursor compartilhado por todo cliente que precisa
// respeitar o mesmo teto externo. Cada chamada espera o seu slot antes de sair;
// nada é enfileirado nem descartado por este pacote.
//
// Fluxo no gateway (cmd/gateway):
//
//  1. Middleware (opcional) espaça requisições por cliente
//  2. o reverse proxy chama o upstream via Transport
//  3. Transport espera o slot da agenda compartilhada e repassa a chamada
package throttle
