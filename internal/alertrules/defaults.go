package alertrules

// Seed questions of the crane, hoist, chain and sling checklists.
// Alert when the answer is "Não": the item should be OK.
var alertOnNoQuestions = []string{
	"O sistema de freios do guincho está funcionando?",
	"O freio do carro está funcionando?",
	"O freio da ponte está funcionando?",
	"A botoeira está em boas condições?",
	"O botão de emergência está funcionando?",
	"Os fins de curso superior e inferior estão funcionando?",
	"O fim de curso do carro está funcionando?",
	"O alarme sonoro funciona durante a movimentação?",
	"O sinalizador luminoso funciona durante a movimentação?",
	"A trava de segurança do gancho está presente?",
	"A trava de segurança do gancho está funcionando?",
	"O gancho está girando sem dificuldades?",
	"O cabo de aço está em boas condições?",
	"O cabo de aço está corretamente enrolado no tambor?",
	"As polias estão em boas condições?",
	"A área de movimentação está desobstruída?",
	"O caminho de rolamento está desobstruído?",
	"A placa de capacidade está fixada e legível?",
	"A corrente está lubrificada?",
	"A corrente possui a plaqueta de identificação instalada?",
	"A cinta possui etiqueta de identificação legível?",
	"Os batentes estão em boas condições?",
	"O controle remoto está funcionando?",
}

// Alert when the answer is "Sim": the item describes a defect.
var alertOnYesQuestions = []string{
	"O cabo de aço possui fios rompidos?",
	"O cabo de aço possui sinais de amassamento ou dobras?",
	"O gancho possui sinais de trincas ou deformação?",
	"O gancho possui abertura acima do permitido?",
	"A corrente possui elos deformados ou desgastados?",
	"A corrente possui sinais de corrosão?",
	"A cinta possui rasgos ou cortes?",
	"A cinta possui furos ou costuras danificadas?",
	"A cinta possui sinais de queimadura ou contaminação química?",
	"O equipamento está fazendo ruídos estranhos?",
	"Há vazamento de óleo no redutor?",
	"A estrutura possui danos visíveis?",
	"Os cabos elétricos possuem emendas expostas?",
}

// Informational questions that must never alert.
var skipQuestions = []string{
	"A corrente possui a plaqueta de identificação instalada?",
	"A corrente possui plaqueta de identificação?",
	"O equipamento possui número de patrimônio visível?",
	"Qual o turno da inspeção?",
	"Observações gerais",
}

var defaultOnNoKeywords = []string{
	"esta funcionando",
	"em boas condicoes",
	"desobstruid",
	"girando sem dificuldades",
	"funciona durante",
	"fixada",
	"presente",
}

var defaultOnYesKeywords = []string{
	"possui sinais",
	"possui dano",
	"possui danificado",
	"esta fazendo",
	"ruidos estranhos",
	"possui furos",
	"possui rasgos",
	"possui fios",
	"possui elos",
}

// DefaultRuleSet returns the seed rule configuration. Each call returns a
// fresh copy.
func DefaultRuleSet() RuleSet {
	rules := make([]RuleEntry, 0, len(alertOnNoQuestions)+len(alertOnYesQuestions)+1)
	for _, q := range alertOnNoQuestions {
		rules = append(rules, RuleEntry{Question: q, Rule: AlertRule{OnNo: true}})
	}
	for _, q := range alertOnYesQuestions {
		rules = append(rules, RuleEntry{Question: q, Rule: AlertRule{OnYes: true}})
	}
	// Registered again after the bulk list: this later entry wins and turns
	// the plaqueta rule off. The skip set suppresses the question anyway.
	rules = append(rules, RuleEntry{
		Question: "A corrente possui a plaqueta de identificação instalada?",
		Rule:     AlertRule{OnYes: false, OnNo: false},
	})

	return RuleSet{
		Rules:         rules,
		Skip:          append([]string(nil), skipQuestions...),
		OnNoKeywords:  append([]string(nil), defaultOnNoKeywords...),
		OnYesKeywords: append([]string(nil), defaultOnYesKeywords...),
	}
}
