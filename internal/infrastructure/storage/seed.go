package storage

import "github.com/yourusername/car-advisor-bot/internal/domain/entity"

// DefaultCars bo'sh katalog uchun boshlang'ich yozuvlar
func DefaultCars() []entity.Car {
	return []entity.Car{
		{
			Category: "Легковой", Brand: "Toyota", Model: "Camry 50", Price: "12 000 000 ₸",
			Description: "Комфортный седан с надёжным двигателем.", Image: "camry.jpg",
			Specs:      "Двигатель: 2.5 л, 181 л.с. | КПП: Автомат | Привод: Передний | Расход: 8.2 л/100 км",
			Discounted: true,
		},
		{
			Category: "Легковой", Brand: "Hyundai", Model: "Elantra", Price: "10 500 000 ₸",
			Description: "Экономичный седан с современным дизайном.", Image: "elantra.jpg",
			Specs: "Двигатель: 1.6 л, 128 л.с. | КПП: Автомат | Привод: Передний | Расход: 7.1 л/100 км",
		},
		{
			Category: "Кроссовер", Brand: "Kia", Model: "Sportage", Price: "15 800 000 ₸",
			Description: "Полный привод, отличная проходимость.", Image: "sportage.jpg",
			Specs:      "Двигатель: 2.0 л, 150 л.с. | КПП: Автомат | Привод: Полный | Расход: 9.5 л/100 км",
			Discounted: true,
		},
		{
			Category: "Кроссовер", Brand: "Toyota", Model: "RAV4", Price: "17 200 000 ₸",
			Description: "Надёжный кроссовер для города и трассы.", Image: "rav4.jpg",
			Specs: "Двигатель: 2.0 л, 173 л.с. | КПП: Вариатор | Привод: Полный | Расход: 8.4 л/100 км",
		},
		{
			Category: "Грузовой", Brand: "Isuzu", Model: "NQR 75", Price: "22 000 000 ₸",
			Description: "Легендарный грузовик для перевозок до 5 тонн.", Image: "isuzu.jpg",
			Specs: "Двигатель: 5.2 л дизель | Мощность: 155 л.с. | КПП: Механика | Грузоподъёмность: 5 тонн",
		},
		{
			Category: "Грузовой", Brand: "MAN", Model: "TGS 26.440", Price: "55 000 000 ₸",
			Description: "Мощный тягач для дальних перевозок.", Image: "man.jpg",
			Specs:      "Двигатель: 10.5 л дизель | Мощность: 440 л.с. | КПП: Автомат | Тягач: 26 тонн",
			Discounted: true,
		},
	}
}

// DefaultHelpSections yordam bo'limlari (jadval bo'sh bo'lsa)
func DefaultHelpSections() []entity.HelpSection {
	return []entity.HelpSection{
		{
			Key: "choose", Label: "🚘 Как выбрать машину", Button: "🚘 Выбор", SortIndex: 1,
			Questions: []entity.HelpQuestion{
				{
					Question: "С чего начать выбор автомобиля?",
					Answer:   "Определи бюджет, назначение (город, трасса, работа) и тип кузова. Потом сравни 2-3 модели по расходу и стоимости обслуживания.",
				},
				{
					Question: "Седан или кроссовер?",
					Answer:   "Седан дешевле и экономичнее в городе. Кроссовер выше, часто с полным приводом, удобнее зимой и на плохих дорогах.",
				},
				{
					Question: "Автомат или механика?",
					Answer:   "Автомат удобнее в пробках. Механика дешевле в обслуживании и чаще встречается на грузовиках.",
				},
			},
		},
		{
			Key: "docs", Label: "📄 Документы и оформление", Button: "📄 Документы", SortIndex: 2,
			Questions: []entity.HelpQuestion{
				{
					Question: "Какие документы нужны для покупки?",
					Answer:   "Удостоверение личности, договор купли-продажи и техпаспорт. Для кредита банк может попросить справку о доходах.",
				},
				{
					Question: "Нужна ли страховка?",
					Answer:   "Да, обязательное страхование ответственности владельцев ТС нужно оформить до постановки на учёт.",
				},
			},
		},
		{
			Key: "finance", Label: "💳 Кредит и оплата", Button: "💳 Кредит", SortIndex: 3,
			Questions: []entity.HelpQuestion{
				{
					Question: "Можно ли купить машину в кредит?",
					Answer:   "Да. Обычно нужен первоначальный взнос от 20% и подтверждение дохода. Условия уточняй у менеджера.",
				},
				{
					Question: "Есть ли скидки?",
					Answer:   "Актуальные акции собраны в разделе «🔥 Выгодные предложения» главного меню.",
				},
			},
		},
	}
}

// DefaultCannedAnswers qa jadvali uchun tayyor javoblar
func DefaultCannedAnswers() []entity.CannedAnswer {
	return []entity.CannedAnswer{
		{Question: "Привет", Answer: "Привет! 👋 Чем помочь с выбором машины?"},
		{Question: "Какой расход у Camry 50?", Answer: "Около 8.2 л/100 км в смешанном цикле."},
		{Question: "Есть ли тест-драйв?", Answer: "Да, тест-драйв можно записать у менеджера салона."},
	}
}
