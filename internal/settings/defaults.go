package settings

import "github.com/DoyleJ11/lastmanstanding/internal/host"

func Default() *Settings {
	return &Settings{
		ConfigVersion: LatestVersion,
		Lobby: Lobby{
			Interval:          10800,
			Countdown:         300,
			AnnouncementTimes: []int{1, 2, 3, 4, 5, 10, 30, 60, 120, 300, 600, 900, 1800},
		},
		Messages: defaultMessages(),
		Arenas: map[string]ArenaSettings{
			DefaultArena: defaultArena(),
		},
	}
}

func defaultArena() ArenaSettings {
	armour := func(material string) host.Item {
		return host.Item{
			Material:     material,
			Amount:       1,
			Enchantments: map[string]int{"protection": 2, "unbreaking": 3},
		}
	}
	return ArenaSettings{
		MinPlayers: 2,
		Inventory: []host.Item{
			{Material: "diamond_sword", Amount: 1, Enchantments: map[string]int{"sharpness": 2}},
			{Material: "splash_potion_instant_heal_2", Amount: 24},
		},
		Armour: host.Armour{
			Head:  armour("diamond_helmet"),
			Body:  armour("diamond_chestplate"),
			Legs:  armour("diamond_leggings"),
			Boots: armour("diamond_boots"),
		},
		Rewards: []Reward{
			{Type: RewardItem, Item: host.Item{Material: "diamond_block"}, Min: 64, Max: 512},
			{
				Type: RewardItem,
				Item: host.Item{
					Material:     "diamond_sword",
					Name:         "LMS Sword",
					Lore:         []string{"Received by winning LMS"},
					Enchantments: map[string]int{"sharpness": 5, "fire_aspect": 2},
				},
				Chance: 0.25,
				Min:    1,
				Max:    1,
			},
			{Type: RewardCommand, Command: "tell {player} Congratulations!", Sender: "console"},
		},
	}
}
