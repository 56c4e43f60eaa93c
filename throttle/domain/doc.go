// Package domain define contratos e tipos de domínio para o pacing de produtores.
//
// Aqui vivem a taxa (Rate), o contrato de agenda compartilhada (Schedule),
// a reserva de slot (Reservation) e o contrato de sequência assíncrona (Sequence).
// Este pacote não depende de net/http nem de implementações concretas.
package domain
