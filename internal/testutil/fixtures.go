package testutil

// ChainLadderSource is a development-factor model: each cell is the previous
// lag's value scaled by a per-lag factor.
const ChainLadderSource = `# chain ladder
$alpha: pos ~ vector(group = DevLagId, anchor = "first");
$sigma: scale;

mean(paid) = $alpha * paid[prev_dev];
variance(paid) = $sigma ^ 2 * paid[prev_dev];
`

// ChainLadderRun is a run file for ChainLadderSource, expecting the source
// next to it as paid.model.
const ChainLadderRun = `
model "paid" {
  source = "paid.model"
  config = {
    paid__family    = "normal"
    alpha__prior_sd = 2
  }
}

observation {
  experience  = 1
  development = 1
  values      = { paid = 100 }
}

observation {
  experience  = 1
  development = 2
  values      = { paid = 150 }
}

observation {
  experience  = 2
  development = 1
  values      = { paid = 110 }
}

observation {
  experience  = 2
  development = 2
  values      = { paid = null }
}

forecast {
  variable        = "paid"
  max_development = 2
  seed            = 7
}
`

// ChainLadderSamples are posterior draws for ChainLadderSource. The spread is
// zero, so forecasts are exact.
const ChainLadderSamples = `
alpha:
  - [1, 1.5]
  - [1, 2.0]
sigma: [0, 0]
paid__missing:
  - [0]
  - [0]
`

// ChainLadderFiles lays out the run file, the source and the samples.
func ChainLadderFiles() map[string]string {
	return map[string]string{
		"run.hcl":      ChainLadderRun,
		"paid.model":   ChainLadderSource,
		"samples.yaml": ChainLadderSamples,
	}
}
