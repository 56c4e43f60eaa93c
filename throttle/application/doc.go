// Package application contém os casos de uso do pacing.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Throttle(seq, schedule) intercala uma espera por slot antes de cada pull,
// Queue/Do fazem o mesmo para uma operação avulsa e Pacer.Acquire devolve uma
// Decision (esperou / desistiu + retry-after).
package application
