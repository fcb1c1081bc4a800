// Package domain define contratos e tipos de domínio para admissão com taxa
// controlada e para a medição da taxa observada.
//
// Este pacote não depende de net, zap nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
