// Package category scores normalized input against a fixed product-category
// catalog. The result is advisory: a nil match means "no additional context",
// never an error.
package category

// Definition describes one catalog entry. Aliases are strong signals, allowed
// words are weak supporting vocabulary. Both are plain data so the scoring
// stays a pure function over the catalog.
type Definition struct {
	Key          string
	Label        string
	Aliases      []string
	AllowedWords []string
}

// Catalog is the closed category set, in priority order. Ties keep the
// earlier entry.
var Catalog = []Definition{
	{
		Key:          "kitchenware",
		Label:        "キッチン・調理器具",
		Aliases:      []string{"kitchen", "kettle", "cookware", "pan", "pot", "キッチン", "調理", "鍋", "フライパン", "ケトル", "食器"},
		AllowedWords: []string{"stainless", "nonstick", "dishwasher", "induction", "boil", "食洗機対応", "ステンレス", "電気ケトル"},
	},
	{
		Key:          "beauty",
		Label:        "美容・スキンケア",
		Aliases:      []string{"beauty", "skincare", "cosme", "serum", "lotion", "美容", "コスメ", "化粧", "スキンケア", "美容液"},
		AllowedWords: []string{"moisture", "hyaluronic", "collagen", "sensitive", "保湿成分", "敏感肌向け", "低刺激処方"},
	},
	{
		Key:          "electronics",
		Label:        "家電・ガジェット",
		Aliases:      []string{"gadget", "electronics", "earbuds", "charger", "speaker", "家電", "ガジェット", "イヤホン", "充電器", "スピーカー"},
		AllowedWords: []string{"wireless", "bluetooth", "battery", "usb-c", "ワイヤレス", "バッテリー", "ノイズキャンセリング"},
	},
	{
		Key:          "fashion",
		Label:        "ファッション",
		Aliases:      []string{"fashion", "apparel", "jacket", "sneaker", "服", "ファッション", "アパレル", "ジャケット", "スニーカー", "バッグ"},
		AllowedWords: []string{"cotton", "oversize", "unisex", "washable", "コットン", "オーバーサイズ", "ユニセックス"},
	},
	{
		Key:          "health",
		Label:        "健康・サプリメント",
		Aliases:      []string{"health", "supplement", "protein", "vitamin", "健康", "サプリ", "プロテイン", "ビタミン", "乳酸菌"},
		AllowedWords: []string{"nutrition", "organic", "additive-free", "栄養機能食品", "無添加処方", "国内製造"},
	},
	{
		Key:          "food",
		Label:        "食品・飲料",
		Aliases:      []string{"food", "snack", "coffee", "drink", "食品", "飲料", "コーヒー", "お菓子", "スイーツ", "お取り寄せ"},
		AllowedWords: []string{"roast", "organic", "gluten-free", "産地直送", "無添加素材", "贈答用にも"},
	},
	{
		Key:          "interior",
		Label:        "インテリア・生活雑貨",
		Aliases:      []string{"interior", "furniture", "sofa", "lamp", "インテリア", "家具", "ソファ", "照明", "収納", "雑貨"},
		AllowedWords: []string{"scandinavian", "compact", "assembly", "北欧テイスト", "省スペース", "組み立て簡単"},
	},
	{
		Key:          "outdoor",
		Label:        "アウトドア・スポーツ",
		Aliases:      []string{"outdoor", "camp", "tent", "yoga", "アウトドア", "キャンプ", "テント", "ヨガ", "登山", "ランニング"},
		AllowedWords: []string{"lightweight", "waterproof", "foldable", "耐水仕様", "軽量設計", "持ち運びやすい"},
	},
	{
		Key:          "baby",
		Label:        "ベビー・キッズ",
		Aliases:      []string{"baby", "kids", "stroller", "ベビー", "キッズ", "子供", "ベビーカー", "おむつ", "知育"},
		AllowedWords: []string{"washable", "nontoxic", "安全基準適合", "肌にやさしい", "丸洗いできる"},
	},
	{
		Key:          "pet",
		Label:        "ペット用品",
		Aliases:      []string{"pet", "dog", "cat", "ペット", "犬", "猫", "キャットタワー", "ドッグフード"},
		AllowedWords: []string{"grain-free", "grooming", "獣医師監修", "国産素材", "食いつき抜群"},
	},
}
