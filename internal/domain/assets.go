package domain

// Image asset identifiers. The presentation layer resolves these to files.
const (
	AssetCPUFront    = "Girl_front"
	AssetPlayerFront = "boyfront"
	AssetCPUWin      = "wingal"
	AssetCPULose     = "losegal"
	AssetPlayerWin   = "boywin"
	AssetPlayerLose  = "boylose"
)

var (
	cpuJankenHandAssets = map[Hand]string{
		Rock:     "googal",
		Scissors: "chokigal",
		Paper:    "pagal",
	}
	playerJankenHandAssets = map[Hand]string{
		Rock:     "goo",
		Scissors: "choki",
		Paper:    "pa",
	}
	directionButtonAssets = map[Direction]string{
		Up:    "top",
		Right: "right",
		Down:  "down",
		Left:  "left",
	}
	// cpu pointing as attacker
	cpuPointAssets = map[Direction]string{
		Up:    "upgal",
		Right: "rightgal",
		Down:  "downgal",
		Left:  "leftgal",
	}
	// cpu turning its face as defender
	cpuFaceAssets = map[Direction]string{
		Up:    "Girl_up",
		Right: "Girl_right",
		Down:  "Girl_down",
		Left:  "Girl_left",
	}
	// player pointing as attacker
	playerPointAssets = map[Direction]string{
		Up:    "top",
		Right: "right",
		Down:  "down",
		Left:  "left",
	}
	// player turning as defender; the art is mirrored, so right and left swap.
	playerFaceAssets = map[Direction]string{
		Up:    "youup",
		Right: "youleft",
		Down:  "youdown",
		Left:  "youright",
	}
)

// CPUJankenHandImage returns the CPU's hand image, or the front face for an unknown hand.
func CPUJankenHandImage(h Hand) string {
	return lookupAsset(cpuJankenHandAssets, h, AssetCPUFront)
}

// PlayerJankenHandImage returns the player's hand image, or the front face for an unknown hand.
func PlayerJankenHandImage(h Hand) string {
	return lookupAsset(playerJankenHandAssets, h, AssetPlayerFront)
}

// HandButtonImage returns the image for a janken input button.
func HandButtonImage(h Hand) string {
	return lookupAsset(playerJankenHandAssets, h, string(h))
}

// DirectionButtonImage returns the image for a pointing input button.
func DirectionButtonImage(d Direction) string {
	return lookupAsset(directionButtonAssets, d, string(d))
}

// CPUImage returns the image shown in the CPU area for the snapshot.
func (s Snapshot) CPUImage() string {
	if s.Phase == PhaseJanken && s.CPUHand != "" {
		return CPUJankenHandImage(s.CPUHand)
	}
	switch s.Phase {
	case PhaseResult:
		switch s.FinalWinner {
		case SideCPU:
			return AssetCPUWin
		case SidePlayer:
			return AssetCPULose
		}
	case PhaseAimm:
		if s.IsCPUAttacker {
			return lookupAsset(cpuPointAssets, s.CPUDirection, AssetCPUFront)
		}
		return lookupAsset(cpuFaceAssets, s.CPUDirection, AssetCPUFront)
	}
	return AssetCPUFront
}

// PlayerImage returns the image shown in the player area for the snapshot.
func (s Snapshot) PlayerImage() string {
	if s.Phase == PhaseJanken && s.PlayerHand != "" {
		return PlayerJankenHandImage(s.PlayerHand)
	}
	switch s.Phase {
	case PhaseResult:
		switch s.FinalWinner {
		case SidePlayer:
			return AssetPlayerWin
		case SideCPU:
			return AssetPlayerLose
		}
	case PhaseAimm:
		if s.IsCPUAttacker {
			return lookupAsset(playerFaceAssets, s.PlayerDirection, AssetPlayerFront)
		}
		return lookupAsset(playerPointAssets, s.PlayerDirection, AssetPlayerFront)
	}
	return AssetPlayerFront
}

func lookupAsset[K comparable](table map[K]string, key K, fallback string) string {
	if name, ok := table[key]; ok {
		return name
	}
	return fallback
}
