// Package application contém os casos de uso (regras de aplicação) do throttler:
// o Dispatcher (admissão + disparo fire-and-forget), o RateReporter (amostragem
// da taxa observada) e o InFlightGate (limite opcional de envios simultâneos).
//
// Ele depende apenas do pacote domain (e do logger injetado) e não conhece net.
package application
